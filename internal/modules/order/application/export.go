package application

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	clientsDomain "github.com/ltaportal/procurement/internal/modules/clients/domain"
	"github.com/ltaportal/procurement/internal/modules/order/domain"
	"github.com/xuri/excelize/v2"
)

// ClientDirectory resolves client names for reports.
type ClientDirectory interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]clientsDomain.Client, error)
}

const exportSheet = "Orders"

var exportHeader = []any{"Order", "Client", "Status", "Items", "Total", "Currency", "Cancellation reason", "Created at", "Updated at"}

// Export renders every order matching filter as an .xlsx workbook. Client
// names are shown in lang.
func (s *OrderService) Export(ctx context.Context, status domain.Status, lang string) ([]byte, error) {
	orders, _, err := s.orders.List(ctx, domain.OrderFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, o := range orders {
		if !seen[o.ClientID] {
			seen[o.ClientID] = true
			ids = append(ids, o.ClientID)
		}
	}
	names := map[uuid.UUID]string{}
	if len(ids) > 0 {
		found, err := s.clients.ListByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list clients: %w", err)
		}
		for _, c := range found {
			names[c.ID] = c.Name(lang)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheet, "A", "A", 38)
	f.SetColWidth(exportSheet, "B", "B", 28)
	f.SetColWidth(exportSheet, "C", "C", 24)
	f.SetColWidth(exportSheet, "G", "G", 32)
	f.SetColWidth(exportSheet, "H", "I", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	f.SetCellStyle(exportSheet, "A1", "I1", headerStyle)

	for i, o := range orders {
		reason := ""
		if o.CancellationReason != nil {
			reason = *o.CancellationReason
		}
		row := []any{
			o.ID.String(),
			names[o.ClientID],
			string(o.Status),
			len(o.Items),
			o.TotalAmount,
			o.Currency,
			reason,
			o.CreatedAt.UTC().Format("2006-01-02 15:04"),
			o.UpdatedAt.UTC().Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
