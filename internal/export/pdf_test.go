package export

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/orderflow/orderflowgo/internal/analytics"
	"github.com/orderflow/orderflowgo/internal/models"
)

func TestLabelSheetProducesPDF(t *testing.T) {
	orders := []models.OrderRecord{sampleOrder("OF-1001"), sampleOrder("OF-1002")}

	pdf, err := LabelSheet(orders, time.Now())
	if err != nil {
		t.Fatalf("LabelSheet failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}

func TestLabelSheetPaginatesLongLists(t *testing.T) {
	var orders []models.OrderRecord
	for i := 0; i < 12; i++ {
		orders = append(orders, sampleOrder("OF-1001"))
	}

	// 12 blocks exceed one page; generation must still succeed
	pdf, err := LabelSheet(orders, time.Now())
	if err != nil {
		t.Fatalf("LabelSheet failed on multi-page list: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty PDF output")
	}
}

func TestDailyReportProducesPDF(t *testing.T) {
	summary := analytics.Compute([]models.OrderRecord{sampleOrder("OF-1001")})

	pdf, err := DailyReport("2024-05-01", summary)
	if err != nil {
		t.Fatalf("DailyReport failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}

func TestFilenamePatterns(t *testing.T) {
	at := time.UnixMilli(1714557600000)
	if got := LabelSheetFilename(at); got != "delivery_orders_1714557600000.pdf" {
		t.Errorf("label filename = %s", got)
	}

	got := ReportFilename("2024-05-01")
	if got != "daily_report_2024-05-01.pdf" {
		t.Errorf("report filename = %s", got)
	}
	if !regexp.MustCompile(`^daily_report_\d{4}-\d{2}-\d{2}\.pdf$`).MatchString(got) {
		t.Errorf("report filename does not match pattern: %s", got)
	}
}
