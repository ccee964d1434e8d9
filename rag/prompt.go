package rag

import "fmt"

// Subject is the person the assistant answers questions about.
const Subject = "Gaston Woollands"

const systemPromptTemplate = `You are a recruiter assistant for %[1]s's CV web page.
Only respond to questions related to %[1]s's experience, skills, and projects.
If a question is unrelated, politely decline and steer back to %[1]s's professional background.
Be detailed and professional in your responses.
Use the following context to inform your answers:
%[2]s`

// SystemPrompt scopes the assistant to subject and embeds the retrieved
// context verbatim.
func SystemPrompt(subject, context string) string {
	return fmt.Sprintf(systemPromptTemplate, subject, context)
}
