package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cognify/backend/internal/model"
	"cognify/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoQuestions  = errors.New("该主题暂无问题")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTopic 导出主题的问题与答案为 Excel
	ExportTopic(ctx context.Context, slug string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportTopic 导出主题问答为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "Questions"
//   - 第 1 行为主题标题，第 2 行为表头
//   - 每个问题一行（# / 问题 / 状态），其后每个答案一行（答案 / 作者 / 是否正确）
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

var exportHeaders = []string{"#", "Question", "Answer", "Answered by", "Correct", "Active"}

const exportSheet = "Questions"

func (s *exportService) ExportTopic(ctx context.Context, slug string) (*bytes.Buffer, string, error) {
	// 1. 查询主题
	topic, err := s.repo.Topic.GetBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrTopicNotFound
		}
		s.logger.Error("查询主题失败", zap.String("slug", slug), zap.Error(err))
		return nil, "", err
	}

	// 2. 查询有序问题及答案
	questions, err := s.repo.Question.ListByTopic(ctx, topic.TopicID)
	if err != nil {
		s.logger.Error("查询主题问题失败", zap.String("topic_id", topic.TopicID), zap.Error(err))
		return nil, "", err
	}
	if len(questions) == 0 {
		return nil, "", ErrExportNoQuestions
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(exportSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheet, "A", "A", 6)
	f.SetColWidth(exportSheet, "B", "C", 48)
	f.SetColWidth(exportSheet, "D", "D", 18)
	f.SetColWidth(exportSheet, "E", "F", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	questionStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	// 标题行
	f.SetCellValue(exportSheet, "A1", topic.Title)
	f.MergeCell(exportSheet, "A1", cell(colName(len(exportHeaders)-1), 1))
	f.SetCellStyle(exportSheet, "A1", "A1", headerStyle)

	// 表头
	for i, h := range exportHeaders {
		f.SetCellValue(exportSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(exportSheet, "A2", cell(colName(len(exportHeaders)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range questions {
		q := &questions[i]
		f.SetCellValue(exportSheet, cell("A", row), i+1)
		f.SetCellValue(exportSheet, cell("B", row), q.QuestionText)
		f.SetCellValue(exportSheet, cell("F", row), yesNo(q.IsActive))
		f.SetCellStyle(exportSheet, cell("A", row), cell("F", row), questionStyle)
		row++

		for j := range q.Answers {
			writeAnswerRow(f, row, &q.Answers[j])
			row++
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("topic_%s.xlsx", topic.Slug), nil
}

func writeAnswerRow(f *excelize.File, row int, a *model.Answer) {
	f.SetCellValue(exportSheet, cell("C", row), a.AnswerText)
	f.SetCellValue(exportSheet, cell("D", row), a.AnsweredBy())
	f.SetCellValue(exportSheet, cell("E", row), yesNo(a.IsCorrect))
}

// ── 辅助函数 ──

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
