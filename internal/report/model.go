package report

import (
	"time"

	"github.com/lib/pq"
)

type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// GenerateEvent names the job handed to the report worker.
const GenerateEvent = "report.generate"

// Schedule is a recurring report run. NextRunAt is always an occurrence of
// AnchorAt under Cadence in Timezone.
type Schedule struct {
	ID             int            `db:"id" json:"id"`
	ReportID       int            `db:"report_id" json:"report_id"`
	Cadence        Cadence        `db:"cadence" json:"cadence"`
	Timezone       string         `db:"timezone" json:"timezone"`
	AnchorAt       time.Time      `db:"anchor_at" json:"anchor_at"`
	LastRunAt      *time.Time     `db:"last_run_at" json:"last_run_at,omitempty"`
	NextRunAt      time.Time      `db:"next_run_at" json:"next_run_at"`
	DeliveryEmails pq.StringArray `db:"delivery_emails" json:"delivery_emails"`
	Format         Format         `db:"format" json:"format"`
	IsActive       bool           `db:"is_active" json:"is_active"`
}

type SweepResult struct {
	Processed []int `json:"processed"`
	Scanned   int   `json:"scanned"`
	Failed    int   `json:"failed"`
}
