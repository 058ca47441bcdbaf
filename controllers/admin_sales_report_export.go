package controllers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
)

var salesHeaders = []string{"Order ID", "Completed", "Customer", "Items", "Total", "Discount", "Net Amount", "Payment Mode", "Payment"}

func salesRecord(row services.SalesRow) []string {
	return []string{
		strconv.FormatUint(uint64(row.OrderID), 10),
		row.CompletedAt.Format("2006-01-02 15:04"),
		row.CustomerName,
		strconv.Itoa(row.Items),
		strconv.FormatInt(row.Total, 10),
		strconv.FormatInt(row.Discount, 10),
		strconv.FormatInt(row.NetAmount, 10),
		row.PaymentMethod,
		row.PaymentStatus,
	}
}

func summaryRecords(s services.SalesSummary) [][]string {
	return [][]string{
		{"Total Sales", strconv.Itoa(s.TotalSales)},
		{"Total Revenue", strconv.FormatInt(s.TotalRevenue, 10)},
		{"Total Items", strconv.Itoa(s.TotalItems)},
		{"Total Customers", strconv.Itoa(s.TotalCustomers)},
		{"Customer Discounts", strconv.FormatInt(s.CustomerDiscounts, 10)},
		{"Coupon Discounts", strconv.FormatInt(s.CouponDiscounts, 10)},
		{"Net Revenue", strconv.FormatInt(s.NetRevenue, 10)},
		{"Avg. Order Value", strconv.FormatInt(s.AverageOrderValue, 10)},
		{"Packages Sold", strconv.Itoa(s.PackagesSold)},
		{"Sessions Used", strconv.Itoa(s.SessionsUsed)},
	}
}

func periodLine(report *services.SalesReport) string {
	// End is exclusive, show the last day covered
	last := report.Period.End.AddDate(0, 0, -1)
	return "Period: " + strings.ToUpper(report.Period.Type) + " | " +
		report.Period.Start.Format("2006-01-02") + " to " + last.Format("2006-01-02")
}

func reportFilename(report *services.SalesReport, ext string) string {
	return fmt.Sprintf("sales_report_%s_%s.%s", report.Period.Type, report.Period.Start.Format("20060102"), ext)
}

// Admin: Download sales report as CSV
func DownloadSalesReportCSV(c *gin.Context) {
	utils.LogInfo("DownloadSalesReportCSV called")
	report, ok := loadSalesReport(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := [][]string{{utils.AppName + " - Sales Report"}, {periodLine(report)}, {}, salesHeaders}
	for _, row := range report.Sales {
		records = append(records, salesRecord(row))
	}
	records = append(records, []string{}, []string{"Summary"})
	records = append(records, summaryRecords(report.Summary)...)
	if err := w.WriteAll(records); err != nil {
		utils.LogError("Failed to write CSV file: %v", err)
		utils.InternalServerError(c, "Failed to write CSV file", nil)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+reportFilename(report, "csv"))
	c.Data(200, "text/csv; charset=utf-8", buf.Bytes())
	utils.LogInfo("Successfully generated CSV report for period %s", report.Period.Type)
}

// Admin: Download sales report as Excel
func DownloadSalesReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadSalesReportExcel called")
	report, ok := loadSalesReport(c)
	if !ok {
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	bold := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	bold.Font = *font

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString(strings.ToUpper(utils.AppName) + " - Sales Report")
	titleRow.Cells[0].SetStyle(bold)
	sheet.AddRow().AddCell().SetString(periodLine(report))
	sheet.AddRow() // spacing

	headerRow := sheet.AddRow()
	for _, h := range salesHeaders {
		cell := headerRow.AddCell()
		cell.SetString(h)
		cell.SetStyle(bold)
	}

	for _, sale := range report.Sales {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(sale.OrderID))
		row.AddCell().SetString(sale.CompletedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetString(sale.CustomerName)
		row.AddCell().SetInt(sale.Items)
		row.AddCell().SetInt(int(sale.Total))
		row.AddCell().SetInt(int(sale.Discount))
		row.AddCell().SetInt(int(sale.NetAmount))
		row.AddCell().SetString(sale.PaymentMethod)
		row.AddCell().SetString(sale.PaymentStatus)
	}

	sheet.AddRow() // spacing
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	summaryRow.Cells[0].SetStyle(bold)
	for _, data := range summaryRecords(report.Summary) {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	if len(report.PackageUsage) > 0 {
		usage, err := file.AddSheet("Package Usage")
		if err != nil {
			utils.LogError("Failed to create package usage sheet: %v", err)
			utils.InternalServerError(c, "Failed to create Excel sheet", nil)
			return
		}
		header := usage.AddRow()
		for _, h := range []string{"Service ID", "Service", "Sessions"} {
			cell := header.AddCell()
			cell.SetString(h)
			cell.SetStyle(bold)
		}
		for _, u := range report.PackageUsage {
			row := usage.AddRow()
			row.AddCell().SetInt(int(u.ServiceID))
			row.AddCell().SetString(u.ServiceName)
			row.AddCell().SetInt(u.Sessions)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+reportFilename(report, "xlsx"))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", nil)
		return
	}
	utils.LogInfo("Successfully generated Excel report for period %s", report.Period.Type)
}

// Admin: Download sales report as PDF
func DownloadSalesReportPDF(c *gin.Context) {
	utils.LogInfo("DownloadSalesReportPDF called")
	report, ok := loadSalesReport(c)
	if !ok {
		return
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, strings.ToUpper(utils.AppName)+" - Sales Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, periodLine(report))
	pdf.Ln(12)

	colWidths := []float64{20, 32, 50, 15, 30, 30, 30, 35, 25}
	aligns := []string{"C", "C", "L", "C", "R", "R", "R", "C", "C"}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(200, 200, 200)
	for i, h := range salesHeaders {
		pdf.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	fill := false
	for _, sale := range report.Sales {
		pdf.SetFillColor(230, 240, 255)
		for i, value := range salesRecord(sale) {
			pdf.CellFormat(colWidths[i], 8, value, "1", 0, aligns[i], fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(220, 230, 250)
	pdf.CellFormat(90, 10, "Summary", "1", 0, "C", true, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	for _, data := range summaryRecords(report.Summary) {
		pdf.CellFormat(50, 8, data[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, data[1], "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename="+reportFilename(report, "pdf"))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", nil)
		return
	}
	utils.LogInfo("Successfully generated PDF report for period %s", report.Period.Type)
}
