package reporting

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

const (
	pageMargin   = 15.0
	lineHeight   = 6.0
	headerHeight = 8.0
)

// RenderPDF writes r as an A4 document. Page breaks are left to fpdf's auto
// page break; a footer numbers every page.
func RenderPDF(w io.Writer, r *Report, loc *time.Location) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Relatório de tarefas", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	rd := &renderer{pdf: pdf, tr: tr, loc: loc}
	rd.cover(r)
	rd.projects(r)
	rd.users(r)
	rd.breakdown(r)

	if err := pdf.Error(); err != nil {
		return apperr.IO(err, "render report")
	}
	if err := pdf.Output(w); err != nil {
		return apperr.IO(err, "write report")
	}
	return nil
}

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	loc *time.Location
}

func (rd *renderer) heading(text string) {
	rd.pdf.Ln(4)
	rd.pdf.SetFont("Helvetica", "B", 14)
	rd.pdf.SetFillColor(230, 236, 242)
	rd.pdf.CellFormat(0, headerHeight, rd.tr(text), "", 1, "L", true, 0, "")
	rd.pdf.Ln(2)
}

func (rd *renderer) subheading(text string) {
	rd.pdf.Ln(2)
	rd.pdf.SetFont("Helvetica", "B", 12)
	rd.pdf.CellFormat(0, lineHeight+1, rd.tr(text), "B", 1, "L", false, 0, "")
	rd.pdf.Ln(1)
}

func (rd *renderer) line(text string) {
	rd.pdf.SetFont("Helvetica", "", 10)
	rd.pdf.MultiCell(0, lineHeight, rd.tr(text), "", "L", false)
}

func (rd *renderer) keyValue(key, value string) {
	rd.pdf.SetFont("Helvetica", "B", 10)
	rd.pdf.CellFormat(45, lineHeight, rd.tr(key), "", 0, "L", false, 0, "")
	rd.pdf.SetFont("Helvetica", "", 10)
	rd.pdf.MultiCell(0, lineHeight, rd.tr(value), "", "L", false)
}

func (rd *renderer) cover(r *Report) {
	rd.pdf.AddPage()
	rd.pdf.SetFont("Helvetica", "B", 20)
	rd.pdf.CellFormat(0, 12, rd.tr("Relatório de Tarefas"), "", 1, "C", false, 0, "")
	rd.pdf.SetFont("Helvetica", "", 10)
	rd.pdf.CellFormat(0, lineHeight, rd.tr("Exportado em "+FormatDateTime(r.ExportedAt, rd.loc)), "", 1, "C", false, 0, "")

	rd.heading("Filtros aplicados")
	for _, f := range r.Filters {
		rd.line("• " + f)
	}

	rd.heading("Resumo")
	rd.keyValue("Total de tarefas", strconv.Itoa(r.TotalTasks))
	rd.keyValue("Concluídas", strconv.Itoa(r.CompletedTasks))
	rd.keyValue("Atrasadas", strconv.Itoa(len(r.Overdue)))
	rd.keyValue("Eficiência", strconv.Itoa(r.Efficiency)+"%")
	rd.keyValue("Projetos", strconv.Itoa(len(r.Projects)))
}

func (rd *renderer) projects(r *Report) {
	rd.heading("Projetos")
	if len(r.Projects) == 0 {
		rd.line("Nenhum projeto.")
		return
	}
	for _, s := range r.Projects {
		rd.subheading(s.Name)
		if p := s.Project; p != nil {
			rd.keyValue("Status", p.Status.Label())
			rd.keyValue("Tipo", p.Type.Label())
			rd.keyValue("Etapa", string(p.Stage))
			rd.keyValue("Prioridade", p.Priority.Label())
			if p.ClientName != "" {
				rd.keyValue("Cliente", p.ClientName)
			}
			if p.Budget != nil {
				rd.keyValue("Orçamento", FormatBRL(*p.Budget))
			}
			if p.StartDate != nil || p.EndDate != nil {
				rd.keyValue("Período", rd.optDate(p.StartDate)+" a "+rd.optDate(p.EndDate))
			}
			if p.Location != "" {
				rd.keyValue("Local", p.Location)
			}
			rd.keyValue("Progresso", strconv.Itoa(s.Progress)+"%")
		}
		rd.taskTable(s.Tasks)
	}
}

func (rd *renderer) taskTable(tasks []taskdomain.TaskWithDetails) {
	if len(tasks) == 0 {
		rd.line("Nenhuma tarefa corresponde aos filtros.")
		return
	}
	widths := []float64{70, 28, 22, 35, 25}
	headers := []string{"Tarefa", "Status", "Prioridade", "Responsável", "Prazo"}

	rd.pdf.Ln(1)
	rd.pdf.SetFont("Helvetica", "B", 9)
	rd.pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		rd.pdf.CellFormat(widths[i], lineHeight, rd.tr(h), "1", 0, "L", true, 0, "")
	}
	rd.pdf.Ln(-1)

	rd.pdf.SetFont("Helvetica", "", 9)
	for _, t := range tasks {
		assignee := "-"
		if t.AssignedUser != nil {
			assignee = t.AssignedUser.DisplayName()
		}
		row := []string{
			truncate(t.Title, 42),
			t.Status.Label(),
			t.Priority.Label(),
			truncate(assignee, 20),
			rd.optDate(t.DueDate),
		}
		for i, v := range row {
			rd.pdf.CellFormat(widths[i], lineHeight, rd.tr(v), "1", 0, "L", false, 0, "")
		}
		rd.pdf.Ln(-1)
	}
}

func (rd *renderer) users(r *Report) {
	rd.heading("Resumo por usuário")
	if len(r.Users) == 0 {
		rd.line("Nenhum usuário com tarefas no período.")
		return
	}
	widths := []float64{90, 30, 30, 30}
	rd.pdf.SetFont("Helvetica", "B", 9)
	rd.pdf.SetFillColor(240, 240, 240)
	for i, h := range []string{"Usuário", "Tarefas", "Concluídas", "Conclusão"} {
		rd.pdf.CellFormat(widths[i], lineHeight, rd.tr(h), "1", 0, "L", true, 0, "")
	}
	rd.pdf.Ln(-1)
	rd.pdf.SetFont("Helvetica", "", 9)
	for _, u := range r.Users {
		row := []string{
			truncate(u.User.DisplayName(), 50),
			strconv.Itoa(u.TaskCount),
			strconv.Itoa(u.CompletedCount),
			strconv.Itoa(u.CompletionRate) + "%",
		}
		for i, v := range row {
			rd.pdf.CellFormat(widths[i], lineHeight, rd.tr(v), "1", 0, "L", false, 0, "")
		}
		rd.pdf.Ln(-1)
	}
}

func (rd *renderer) breakdown(r *Report) {
	rd.heading("Tarefas por status")
	for _, c := range r.ByStatus {
		rd.keyValue(c.Label, strconv.Itoa(c.Count))
	}
	rd.heading("Tarefas por prioridade")
	for _, c := range r.ByPriority {
		rd.keyValue(c.Label, strconv.Itoa(c.Count))
	}
	rd.heading("Tarefas atrasadas")
	if len(r.Overdue) == 0 {
		rd.line("Nenhuma tarefa atrasada.")
		return
	}
	for _, t := range r.Overdue {
		project := noProjectName
		if t.ProjectName != nil {
			project = *t.ProjectName
		}
		rd.line(fmt.Sprintf("• %s (%s), prazo %s", t.Title, project, rd.optDate(t.DueDate)))
	}
}

func (rd *renderer) optDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatDate(*t, rd.loc)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
