// Package tasks generates coding-interview tasks with a language model.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxTaskLen caps the generated task description, enforced through
	// the prompt rather than truncation.
	MaxTaskLen = 1000
	// minTaskLen guards against answers that carry no usable task.
	minTaskLen = 10
)

var (
	ErrNotConfigured = errors.New("task generation is not configured")
	ErrEmptyResponse = errors.New("model response was empty")
	ErrNoTask        = errors.New("no valid task could be extracted")
	ErrBlocked       = errors.New("content generation blocked by safety filters")
	ErrQuota         = errors.New("model api quota exceeded")
)

// Generator produces one interview task for a topic/difficulty pair.
type Generator interface {
	GenerateTask(ctx context.Context, topic, difficulty string) (string, error)
}

// BuildPrompt asks for exactly one task, bounded in length, with a fixed
// "Task:" marker so extraction stays mechanical.
func BuildPrompt(topic, difficulty string) string {
	return fmt.Sprintf(`Generate exactly 1 (one) programming interview task for a candidate with %s-level skills on the topic of %q.
The task should be a clear and concise problem description suitable for a live coding interview.
The total length of the task description MUST NOT exceed %d characters.
Do not include solutions, hints, or any introductory/concluding phrases beyond the task itself.
Format the task starting with "Task:" on a new line. Do NOT use "---" as a separator.
Example:
Task: Describe how to implement a function that reverses a string.
`, difficulty, topic, MaxTaskLen)
}

var taskMarker = regexp.MustCompile(`(?im)^Task:\s*`)

// ExtractTask strips the "Task:" marker and rejects answers too short to
// be a real problem statement.
func ExtractTask(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyResponse
	}
	task := strings.TrimSpace(taskMarker.ReplaceAllString(raw, ""))
	if len(task) <= minTaskLen {
		return "", ErrNoTask
	}
	return task, nil
}
