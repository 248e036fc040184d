// internal/utils/pdf_generator.go

package utils

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hotelac/internal/db"
)

const fontFile = "./SimHei.ttf"

// BillPDF 生成退房账单 PDF,含空调详单表格
func BillPDF(bill *db.Bill, details []db.Detail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	pdf.AddUTF8Font("chinese", "", fontFile)

	pdf.SetFont("chinese", "", 20)
	pdf.Cell(190, 15, "住宿账单")
	pdf.Ln(18)

	pdf.SetFont("chinese", "", 11)
	pdf.Cell(95, 8, fmt.Sprintf("账单编号: %s", bill.BillNo))
	pdf.Cell(95, 8, fmt.Sprintf("打印时间: %s", time.Now().Format("2006-01-02 15:04:05")))
	pdf.Ln(10)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(6)

	pdf.Cell(25, 8, "房间号:")
	pdf.Cell(70, 8, bill.RoomID)
	pdf.Cell(25, 8, "客人:")
	pdf.Cell(70, 8, bill.GuestID)
	pdf.Ln(8)
	pdf.Cell(25, 8, "入住时间:")
	pdf.Cell(70, 8, bill.CheckinTime.Format("2006-01-02 15:04:05"))
	pdf.Cell(25, 8, "退房时间:")
	pdf.Cell(70, 8, bill.CheckoutTime.Format("2006-01-02 15:04:05"))
	pdf.Ln(10)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(6)

	pdf.Cell(95, 8, fmt.Sprintf("住宿 %d 晚", bill.Nights))
	pdf.Cell(95, 8, fmt.Sprintf("%.2f 元", bill.RoomFee))
	pdf.Ln(8)
	pdf.Cell(95, 8, "空调费用")
	pdf.Cell(95, 8, fmt.Sprintf("%.2f 元", bill.ACFee))
	pdf.Ln(8)
	pdf.SetFont("chinese", "", 13)
	pdf.Cell(95, 10, "应付总额")
	pdf.Cell(95, 10, fmt.Sprintf("%.2f 元", bill.TotalFee))
	pdf.Ln(14)

	drawDetailTable(pdf, details)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render bill pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawDetailTable(pdf *gofpdf.Fpdf, details []db.Detail) {
	if len(details) == 0 {
		return
	}

	pdf.SetFont("chinese", "", 12)
	pdf.Cell(190, 10, "空调使用详单")
	pdf.Ln(12)

	headers := []struct {
		width float64
		name  string
	}{
		{35, "开始时间"},
		{35, "结束时间"},
		{25, "时长(分)"},
		{20, "风速"},
		{30, "费率(元/分)"},
		{25, "费用(元)"},
		{20, "原因"},
	}

	pdf.SetFont("chinese", "", 10)
	pdf.SetFillColor(240, 240, 240)
	for _, h := range headers {
		pdf.CellFormat(h.width, 9, h.name, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(9)

	pdf.SetFont("chinese", "", 9)
	for _, d := range details {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		pdf.CellFormat(35, 8, d.StartTime.Format("01-02 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, d.EndTime.Format("01-02 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%.1f", d.Seconds/60.0), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, d.Speed, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", d.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", d.Cost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, d.Reason, "1", 0, "C", false, 0, "")
		pdf.Ln(8)
	}
}
