package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{
	"ID", "Form", "Submitter", "Priority", "Status", "Current Step",
	"Resubmits", "Created", "Last Update",
}

// ExportToExcel renders submissions matching the filter into an xlsx
// workbook, one row per submission with a second sheet for the
// decision history.
func (s *SubmissionServiceImpl) ExportToExcel(ctx context.Context, status string, formName string) ([]byte, string, error) {
	filter := map[string]interface{}{}
	if status != "" {
		filter["status"] = status
	}
	if formName != "" {
		filter["form_name"] = formName
	}

	subs, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Submissions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx := range subs {
		sub := &subs[rowIdx]
		stepName := ""
		if step, ok := sub.CurrentStep(); ok && !sub.IsTerminal() {
			stepName = step.Name
		}
		row := []interface{}{
			sub.ID.Hex(),
			sub.FormName,
			sub.SubmitterID.Hex(),
			sub.Priority,
			sub.Status,
			stepName,
			sub.ResubmitCount,
			sub.CreatedAt.Format("2006-01-02 15:04:05"),
			sub.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	if err := s.writeHistorySheet(f, subs); err != nil {
		return nil, "", err
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("submissions_%s.xlsx", time.Now().Format("20060102_150405"))
	return buffer.Bytes(), filename, nil
}

func (s *SubmissionServiceImpl) writeHistorySheet(f *excelize.File, subs []Submission) error {
	sheetName := "Decisions"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	headers := []string{"Submission", "Step", "Actor", "Decision", "Comment", "Decided At"}
	for i, col := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	rowIdx := 2
	for i := range subs {
		for _, entry := range subs[i].ApprovalHistory {
			row := []interface{}{
				subs[i].ID.Hex(),
				entry.StepName,
				entry.ActorID.Hex(),
				entry.Decision,
				entry.Comment,
				entry.DecidedAt.Format("2006-01-02 15:04:05"),
			}
			for colIdx, val := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
				f.SetCellValue(sheetName, cell, val)
			}
			rowIdx++
		}
	}
	return nil
}
