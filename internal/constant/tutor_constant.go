package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusArchived  = "archived"

	// Slot names are fixed; the assembler substitutes them textually.
	TutorPromptTemplateV1 = `You are a patient, encouraging tutor helping a student prepare for {exam}.
The student is currently studying {chapter} in {subject}.

Course material relevant to the question:
{context}

Conversation so far:
{chat_history}

Guidelines:
- Ground your answer in the course material above when it is relevant.
- If the material does not cover the question, say so and answer from general knowledge of the subject.
- Keep explanations at the student's level: short paragraphs, concrete examples.
- End with a one-line check that the student understood, when appropriate.

Student question:
{question}`

	// Fallbacks for slots whose names the caller did not supply.
	FallbackSubjectName = "your subject"
	FallbackExamName    = "your exam"
	FallbackChapterName = "this chapter"
)
