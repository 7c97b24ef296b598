// Package prompt assembles the tutoring prompt from retrieved course
// material, recent conversation, and the student's question. Assembly is
// pure string work: identical inputs always produce an identical prompt.
package prompt

import (
	"strings"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/contract"
)

const (
	emptyContextPlaceholder = "(no course material matched this question)"
	emptyHistoryPlaceholder = "(this is the start of the conversation)"
)

type BuildParams struct {
	ExamName    string
	SubjectName string
	ChapterName string
	Chunks      []*contract.ScoredContentChunk
	History     []*entity.ChatMessage
	Question    string
}

type Builder struct {
	template string
}

func NewBuilder() *Builder {
	return &Builder{template: constant.TutorPromptTemplateV1}
}

// NewBuilderWithTemplate allows a caller-supplied template. The template
// uses the same slot names as the default one.
func NewBuilderWithTemplate(template string) *Builder {
	return &Builder{template: template}
}

func (b *Builder) Build(params BuildParams) string {
	exam := params.ExamName
	if exam == "" {
		exam = constant.FallbackExamName
	}
	subject := params.SubjectName
	if subject == "" {
		subject = constant.FallbackSubjectName
	}
	chapter := params.ChapterName
	if chapter == "" {
		chapter = constant.FallbackChapterName
	}

	replacer := strings.NewReplacer(
		"{exam}", exam,
		"{subject}", subject,
		"{chapter}", chapter,
		"{context}", formatChunks(params.Chunks),
		"{chat_history}", formatHistory(params.History),
		"{question}", params.Question,
	)
	return replacer.Replace(b.template)
}

func formatChunks(chunks []*contract.ScoredContentChunk) string {
	if len(chunks) == 0 {
		return emptyContextPlaceholder
	}
	var sb strings.Builder
	for i, c := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSpace(c.Chunk.Text))
	}
	return sb.String()
}

func formatHistory(history []*entity.ChatMessage) string {
	if len(history) == 0 {
		return emptyHistoryPlaceholder
	}
	var sb strings.Builder
	for i, msg := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		label := "Student"
		if msg.Role == constant.ChatMessageRoleAssistant {
			label = "Tutor"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(msg.Text)
	}
	return sb.String()
}
