package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/store"
)

// Client is a store.Gateway backed by a bridge Server.
type Client struct {
	httpClient *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Client{httpClient: client}
}

func (c *Client) Close() error {
	c.httpClient.GetClient().CloseIdleConnections()
	return nil
}

// call posts args to method. Every failure to reach the server or to get an answer from
// its store is a PersistenceError.
func call[R any](ctx context.Context, c *Client, method string, args any) (R, error) {
	var zero R
	op := "bridge." + method
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(args).
		Post(PathPrefix + method)
	if err != nil {
		return zero, database.Wrap(op, err)
	}

	var body response[R]
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		if res.StatusCode() >= http.StatusInternalServerError {
			return zero, database.Wrap(op, fmt.Errorf("status code: %d, body: %s", res.StatusCode(), res.String()))
		}
		return zero, fmt.Errorf("json.Unmarshal(%s response) > %w", method, err)
	}
	if body.Error != nil {
		return zero, body.Error.err(method)
	}
	if res.StatusCode() != http.StatusOK {
		return zero, fmt.Errorf("bridge %s: status code: %d", method, res.StatusCode())
	}
	return body.Result, nil
}

func exec(ctx context.Context, c *Client, method string, args any) error {
	_, err := call[json.RawMessage](ctx, c, method, args)
	return err
}

func (c *Client) Ping(ctx context.Context) error {
	return exec(ctx, c, "Ping", struct{}{})
}

func (c *Client) FindTopic(ctx context.Context, userID, topicID string) (*learning.Topic, error) {
	return call[*learning.Topic](ctx, c, "FindTopic", entityArgs{UserID: userID, ID: topicID})
}

func (c *Client) FindTopics(ctx context.Context, userID string) ([]learning.Topic, error) {
	return call[[]learning.Topic](ctx, c, "FindTopics", userArgs{UserID: userID})
}

func (c *Client) SaveTopic(ctx context.Context, topic *learning.Topic) error {
	return exec(ctx, c, "SaveTopic", topic)
}

func (c *Client) DeleteTopic(ctx context.Context, userID, topicID string) error {
	return exec(ctx, c, "DeleteTopic", entityArgs{UserID: userID, ID: topicID})
}

func (c *Client) FindItem(ctx context.Context, userID, itemID string) (*learning.Item, error) {
	return call[*learning.Item](ctx, c, "FindItem", entityArgs{UserID: userID, ID: itemID})
}

func (c *Client) FindItems(ctx context.Context, filter learning.ItemFilter) ([]learning.Item, error) {
	return call[[]learning.Item](ctx, c, "FindItems", filter)
}

func (c *Client) SaveItem(ctx context.Context, item *learning.Item) error {
	return exec(ctx, c, "SaveItem", item)
}

func (c *Client) DeleteItem(ctx context.Context, userID, itemID string) error {
	return exec(ctx, c, "DeleteItem", entityArgs{UserID: userID, ID: itemID})
}

func (c *Client) CreateReviewSession(ctx context.Context, session *learning.ReviewSession) error {
	return exec(ctx, c, "CreateReviewSession", session)
}

func (c *Client) FindReviewSessions(ctx context.Context, filter learning.SessionFilter) ([]learning.ReviewSession, error) {
	return call[[]learning.ReviewSession](ctx, c, "FindReviewSessions", filter)
}

func (c *Client) FindStats(ctx context.Context, userID string) (*gamification.Stats, error) {
	return call[*gamification.Stats](ctx, c, "FindStats", userArgs{UserID: userID})
}

func (c *Client) SaveStats(ctx context.Context, stats *gamification.Stats) error {
	return exec(ctx, c, "SaveStats", stats)
}

func (c *Client) FindAchievements(ctx context.Context, userID string) ([]gamification.Achievement, error) {
	return call[[]gamification.Achievement](ctx, c, "FindAchievements", userArgs{UserID: userID})
}

func (c *Client) CreateAchievement(ctx context.Context, achievement *gamification.Achievement) error {
	return exec(ctx, c, "CreateAchievement", achievement)
}

func (c *Client) FindDailyStats(ctx context.Context, userID, date string) (*gamification.DailyStats, error) {
	return call[*gamification.DailyStats](ctx, c, "FindDailyStats", dailyArgs{UserID: userID, Date: date})
}

func (c *Client) FindDailyStatsRange(ctx context.Context, userID, from, to string) ([]gamification.DailyStats, error) {
	return call[[]gamification.DailyStats](ctx, c, "FindDailyStatsRange", rangeArgs{UserID: userID, From: from, To: to})
}

func (c *Client) SaveDailyStats(ctx context.Context, daily *gamification.DailyStats) error {
	return exec(ctx, c, "SaveDailyStats", daily)
}

var _ store.Gateway = (*Client)(nil)
