package main

import (
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/statistics"
)

type ModeFlag learning.Mode

// Set implements pflag.Value.
func (m *ModeFlag) Set(v string) error {
	mode, err := learning.ParseMode(v)
	if err != nil {
		return err
	}
	*m = ModeFlag(mode)
	return nil
}

// String implements pflag.Value.
func (m *ModeFlag) String() string {
	if m == nil {
		return ""
	}
	return string(*m)
}

// Type implements pflag.Value.
func (m *ModeFlag) Type() string {
	return "ModeFlag"
}

type PeriodFlag statistics.Period

// Set implements pflag.Value.
func (p *PeriodFlag) Set(v string) error {
	period, err := statistics.ParsePeriod(v)
	if err != nil {
		return err
	}
	*p = PeriodFlag(period)
	return nil
}

// String implements pflag.Value.
func (p *PeriodFlag) String() string {
	if p == nil {
		return ""
	}
	return string(*p)
}

// Type implements pflag.Value.
func (p *PeriodFlag) Type() string {
	return "PeriodFlag"
}

var (
	_ pflag.Value = (*ModeFlag)(nil)
	_ pflag.Value = (*PeriodFlag)(nil)
)
