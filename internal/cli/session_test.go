package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/learning"
	mock_cli "github.com/at-ishikawa/studytrack/internal/mocks/cli"
	"github.com/at-ishikawa/studytrack/internal/review"
)

func TestReviewSessionCLI_Session(t *testing.T) {
	disableColor(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	next := now.AddDate(0, 0, 1)
	due := []learning.Item{
		{ID: "item-1", Content: "mitosis"},
		{ID: "item-2", Content: "meiosis", ReviewCount: 1},
	}
	outcome := func(req review.Request) *review.Outcome {
		return &review.Outcome{
			Item:    learning.Item{ID: req.ItemID, Content: "mitosis", NextReviewAt: &next, IntervalDays: 1},
			Session: learning.ReviewSession{Difficulty: req.Difficulty},
		}
	}

	tests := []struct {
		name          string
		input         string
		setupMock     func(m *mock_cli.MockReviewer)
		wantErr       error
		wantAnyErr    bool
		wantRemaining int
		wantOutput    string
	}{
		{
			name:  "reviews the first due item",
			input: "Good\n",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(due, nil)
				m.EXPECT().Review(gomock.Any(), review.Request{
					UserID:     "user-1",
					ItemID:     "item-1",
					Difficulty: learning.DifficultyGood,
					ReviewedAt: now,
				}).DoAndReturn(func(_ context.Context, req review.Request) (*review.Outcome, error) {
					return outcome(req), nil
				})
			},
			wantRemaining: 1,
			wantOutput:    "reviewed as good",
		},
		{
			name:  "unknown difficulty keeps the item",
			input: "maybe\n",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(due, nil)
			},
			wantRemaining: 2,
			wantOutput:    "invalid difficulty maybe",
		},
		{
			name:  "quit",
			input: "q\n",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(due, nil)
			},
			wantErr:       errEnd,
			wantRemaining: 2,
		},
		{
			name:  "end of input",
			input: "",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(due, nil)
			},
			wantErr:       errEnd,
			wantRemaining: 2,
		},
		{
			name:  "last line without newline",
			input: "easy",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(due, nil)
				m.EXPECT().Review(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req review.Request) (*review.Outcome, error) {
						return outcome(req), nil
					})
			},
			wantRemaining: 1,
			wantOutput:    "reviewed as easy",
		},
		{
			name:  "nothing is due",
			input: "good\n",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(nil, nil)
			},
			wantErr:    errEnd,
			wantOutput: "No more items to review!",
		},
		{
			name:  "archived item is skipped",
			input: "good\n",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(due, nil)
				m.EXPECT().Review(gomock.Any(), gomock.Any()).Return(nil, review.ErrArchived)
			},
			wantRemaining: 1,
			wantOutput:    "archived items are not reviewed",
		},
		{
			name:  "persistence error",
			input: "good\n",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(due, nil)
				m.EXPECT().Review(gomock.Any(), gomock.Any()).
					Return(nil, database.Wrap("db.NamedExecContext(replace learning_items)", errors.New("connection refused")))
			},
			wantAnyErr:    true,
			wantRemaining: 2,
		},
		{
			name:  "due items error",
			input: "good\n",
			setupMock: func(m *mock_cli.MockReviewer) {
				m.EXPECT().DueItems(gomock.Any(), "user-1", "topic-1", now).Return(nil, errors.New("connection refused"))
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reviewer := mock_cli.NewMockReviewer(ctrl)
			tt.setupMock(reviewer)

			var out bytes.Buffer
			session := NewReviewSessionCLI(reviewer, NewPrinter(&out, time.UTC), strings.NewReader(tt.input), "user-1", "topic-1")
			session.now = func() time.Time { return now }

			err := session.Session(context.Background())
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantRemaining, session.Remaining())
			assert.Contains(t, out.String(), tt.wantOutput)
		})
	}
}

func TestReviewSessionCLI_Run(t *testing.T) {
	disableColor(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("reviews every due item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reviewer := mock_cli.NewMockReviewer(ctrl)
		reviewer.EXPECT().DueItems(gomock.Any(), "user-1", "", now).Return([]learning.Item{
			{ID: "item-1", Content: "mitosis"},
			{ID: "item-2", Content: "meiosis"},
		}, nil)
		var reviewed []string
		reviewer.EXPECT().Review(gomock.Any(), gomock.Any()).Times(2).
			DoAndReturn(func(_ context.Context, req review.Request) (*review.Outcome, error) {
				reviewed = append(reviewed, req.ItemID)
				return &review.Outcome{Item: learning.Item{ID: req.ItemID}, Session: learning.ReviewSession{Difficulty: req.Difficulty}}, nil
			})

		var out bytes.Buffer
		session := NewReviewSessionCLI(reviewer, NewPrinter(&out, time.UTC), strings.NewReader("good\nagain\n"), "user-1", "")
		session.now = func() time.Time { return now }

		require.NoError(t, session.Run(context.Background()))
		assert.Equal(t, []string{"item-1", "item-2"}, reviewed)
		assert.Contains(t, out.String(), "No more items to review!")
	})

	t.Run("returns the session error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reviewer := mock_cli.NewMockReviewer(ctrl)
		reviewer.EXPECT().DueItems(gomock.Any(), "user-1", "", now).Return(nil, errors.New("connection refused"))

		var out bytes.Buffer
		session := NewReviewSessionCLI(reviewer, NewPrinter(&out, time.UTC), strings.NewReader(""), "user-1", "")
		session.now = func() time.Time { return now }

		err := session.Run(context.Background())
		assert.ErrorContains(t, err, "connection refused")
	})
}
