package models

import (
	"fmt"
	"time"
)

// ReportType is the period an insight covers.
type ReportType string

const (
	ReportDaily   ReportType = "daily"
	ReportWeekly  ReportType = "weekly"
	ReportMonthly ReportType = "monthly"
)

// ReportTypes lists the report types in cycling order.
var ReportTypes = []ReportType{ReportDaily, ReportWeekly, ReportMonthly}

// ParseReportType converts s into a ReportType.
func ParseReportType(s string) (ReportType, error) {
	switch r := ReportType(s); r {
	case ReportDaily, ReportWeekly, ReportMonthly:
		return r, nil
	}
	return "", fmt.Errorf("report_type must be daily, weekly, or monthly")
}

type Trend struct {
	Metric    string `json:"metric"`
	Direction string `json:"direction"` // up, down or stable
	Change    string `json:"change"`
	Note      string `json:"note"`
}

type Correlation struct {
	Pair        string `json:"pair"`
	Strength    string `json:"strength"` // strong, moderate or weak
	Description string `json:"description"`
}

type InsightContent struct {
	Summary      string        `json:"summary"`
	Trends       []Trend       `json:"trends"`
	Correlations []Correlation `json:"correlations"`
	Advice       []string      `json:"advice"`
}

type Insight struct {
	ID          string         `json:"id"`
	ReportType  ReportType     `json:"report_type"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	Content     InsightContent `json:"content"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// TaskStatus is the state of an asynchronous generation task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskSuccess TaskStatus = "success"
	TaskFailed  TaskStatus = "failed"
)

// GenerateResponse is returned by the generate endpoint: either a finished
// insight (synchronous mode) or a task id to poll.
type GenerateResponse struct {
	TaskID  string   `json:"task_id,omitempty"`
	Insight *Insight `json:"-"`
}

// GenerateStatus is returned by the generation status endpoint.
type GenerateStatus struct {
	Status  TaskStatus `json:"status"`
	Insight *Insight   `json:"insight,omitempty"`
	Error   string     `json:"error,omitempty"`
}
