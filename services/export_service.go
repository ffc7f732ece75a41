package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-collector/models"
)

const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"

	exportSheet = "Responses"
)

// ExportFile là nội dung file xuất, controller trả thẳng về client.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

// Export xuất mỗi session thành một dòng, mỗi câu hỏi một cột.
func (s *ExportService) Export(ctx context.Context, surveyID, ownerID uint, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportXLSX {
		return nil, ValidationErrors{fieldError("format", "oneof", "must be one of: csv, xlsx")}
	}

	db := s.db.WithContext(ctx)
	survey, err := loadOwnedSurvey(db, surveyID, ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(db, survey)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("survey_%d_%s.%s", survey.ID, time.Now().UTC().Format("20060102_150405"), format)
	if format == ExportXLSX {
		data, err := writeXLSX(rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Name:        name,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	}

	data, err := writeCSV(rows)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: name, ContentType: "text/csv; charset=utf-8", Data: data}, nil
}

// rows: dòng đầu là header, sau đó mỗi session một dòng.
func (s *ExportService) rows(db *gorm.DB, survey *models.Survey) ([][]string, error) {
	var questions []models.Question
	if err := db.Scopes(orderQuestions).Where("survey_id = ?", survey.ID).Find(&questions).Error; err != nil {
		return nil, err
	}
	var sessions []models.SurveySession
	if err := db.Preload("Responses").Preload("Responses.Choices", orderByID).
		Where("survey_id = ?", survey.ID).
		Order("id ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	header := []string{"session_id", "created_at", "ip_address"}
	for _, q := range questions {
		header = append(header, q.Text)
	}
	out := [][]string{header}

	for _, sess := range sessions {
		byQuestion := make(map[uint]models.Response, len(sess.Responses))
		for _, r := range sess.Responses {
			byQuestion[r.QuestionID] = r
		}
		row := []string{
			strconv.FormatUint(uint64(sess.ID), 10),
			sess.CreatedAt.UTC().Format(time.RFC3339),
			sess.IPAddress,
		}
		for _, q := range questions {
			r, ok := byQuestion[q.ID]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatAnswer(&r))
		}
		out = append(out, row)
	}
	return out, nil
}

func formatAnswer(r *models.Response) string {
	switch {
	case len(r.Choices) > 0:
		texts := make([]string, 0, len(r.Choices))
		for _, c := range r.Choices {
			texts = append(texts, c.Text)
		}
		return strings.Join(texts, "; ")
	case r.ScaleAnswer != nil:
		return strconv.Itoa(*r.ScaleAnswer)
	case r.TextAnswer != nil:
		return *r.TextAnswer
	}
	return ""
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
