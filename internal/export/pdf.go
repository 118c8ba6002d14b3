package export

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/orderflow/orderflowgo/internal/analytics"
	"github.com/orderflow/orderflowgo/internal/models"
)

const (
	labelBlockHeight = 50.0
	labelBlockStride = 60.0
	// No room for another label block past this line, start a new page
	labelPageBreakY = 240.0
)

// LabelSheetFilename returns the download name for a label sheet
// generated at t.
func LabelSheetFilename(t time.Time) string {
	return fmt.Sprintf("delivery_orders_%d.pdf", t.UnixMilli())
}

// ReportFilename returns the download name for the daily report of the
// given YYYY-MM-DD date.
func ReportFilename(date string) string {
	return fmt.Sprintf("daily_report_%s.pdf", date)
}

// LabelSheet renders one boxed label block per order: an id/status
// header pair, the four body fields with the address word-wrapped to the
// page width, and a QR code of the order id for scan-to-find. Page
// breaks are inserted when the remaining height cannot fit one more
// block.
func LabelSheet(orders []models.OrderRecord, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	y := 20.0

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(79, 70, 229)
	pdf.Text(14, y, "Order Delivery Labels")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.Text(14, y+8, "Generated on: "+generatedAt.Local().Format("2006-01-02 15:04:05"))
	pdf.Text(14, y+13, fmt.Sprintf("Total Orders: %d", len(orders)))

	y += 25

	for i, order := range orders {
		if y > labelPageBreakY {
			pdf.AddPage()
			y = 20
		}

		pdf.SetDrawColor(226, 232, 240)
		pdf.Rect(14, y, pageWidth-28, labelBlockHeight, "D")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(71, 85, 105)
		pdf.Text(18, y+8, "Order ID: "+order.OrderID)
		pdf.Text(pageWidth-60, y+8, "Status: "+string(order.Status))

		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(15, 23, 42)
		pdf.Text(18, y+16, "NAME: "+order.Name)
		pdf.Text(18, y+24, "CONTACT: "+order.Contact)
		pdf.Text(18, y+32, "COD BILL: "+order.CodBill)

		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(51, 65, 85)
		pdf.SetXY(18, y+36)
		pdf.MultiCell(pageWidth-40-labelBlockHeight*0.5, 5, "ADDRESS: "+order.Address, "", "L", false)

		if err := drawOrderQR(pdf, order.OrderID, i, pageWidth-14-22, y+22); err != nil {
			return nil, err
		}

		y += labelBlockStride
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("label sheet output: %w", err)
	}
	return buf.Bytes(), nil
}

// drawOrderQR embeds a QR code of the order id at (x, y)
func drawOrderQR(pdf *gofpdf.Fpdf, orderID string, idx int, x, y float64) error {
	png, err := qrcode.Encode(orderID, qrcode.Low, 256)
	if err != nil {
		return fmt.Errorf("qr for %s: %w", orderID, err)
	}

	imgName := fmt.Sprintf("qr_%d", idx)
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x, y, 18, 18, false, opts, 0, "")
	return nil
}

// DailyReport renders the daily delivery report: date, totals, success
// rate, the per-status count table and the cancellation-reason
// histogram. Callers must compute the summary over the day view, never
// the current batch.
func DailyReport(date string, summary analytics.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	y := 20.0
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(79, 70, 229)
	pdf.Text(14, y, "Daily Delivery Report")

	y += 15
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(100, 116, 139)
	pdf.Text(14, y, "Date: "+date)
	pdf.Text(14, y+7, fmt.Sprintf("Total Orders: %d", summary.Total))
	pdf.Text(14, y+14, fmt.Sprintf("Success Rate: %d%%", summary.SuccessRate))

	y += 30
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(15, 23, 42)
	pdf.Text(14, y, "Summary Statistics")

	y += 10
	pdf.SetFont("Helvetica", "", 10)
	rows := [][2]string{
		{"Status", "Count"},
		{"Delivered", fmt.Sprintf("%d", summary.Delivered)},
		{"Cancelled", fmt.Sprintf("%d", summary.Cancelled)},
		{"Pending", fmt.Sprintf("%d", summary.Pending)},
		{"Out for Delivery", fmt.Sprintf("%d", summary.OutForDelivery)},
	}
	for i, row := range rows {
		pdf.Text(14, y+float64(i)*7, row[0])
		pdf.Text(60, y+float64(i)*7, row[1])
	}

	y += 50
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(14, y, "Cancellation Analysis")

	y += 10
	pdf.SetFont("Helvetica", "", 10)
	for i, reason := range sortedReasons(summary.CancelReasons) {
		pdf.Text(14, y+float64(i)*7, fmt.Sprintf("%s: %d", reason, summary.CancelReasons[reason]))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report output: %w", err)
	}
	return buf.Bytes(), nil
}

// sortedReasons fixes the histogram ordering so report output is stable
func sortedReasons(hist map[string]int) []string {
	reasons := make([]string, 0, len(hist))
	for r := range hist {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	return reasons
}
