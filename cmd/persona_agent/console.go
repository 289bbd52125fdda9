package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/persona-builder/internal/extraction"
	"github.com/jonathan/persona-builder/internal/llm"
	"github.com/jonathan/persona-builder/internal/types"
)

// console reads line-oriented answers from the operator.
type console struct {
	in  *bufio.Scanner
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewScanner(in), out: out}
}

// ask prints prompt and returns the trimmed reply. io.EOF is returned once
// input is exhausted.
func (c *console) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// readQuestions prompts up to limit times. Blank entries are dropped, so
// fewer than limit questions may be returned.
func (c *console) readQuestions(limit int) ([]string, error) {
	fmt.Fprintf(c.out, "Please enter up to %d questions:\n", limit)
	questions := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		q, err := c.ask(fmt.Sprintf("Enter question %d: ", i+1))
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			break
		}
		if err != nil {
			return nil, err
		}
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// readTarget prompts until a non-blank target is entered.
func (c *console) readTarget() (string, error) {
	for {
		target, err := c.ask("Enter a goal or career choice to rank the persona against: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("no target entered")
			}
			return "", err
		}
		if target != "" {
			return target, nil
		}
	}
}

// answerFunc produces the answer to one question.
type answerFunc func(ctx context.Context, question string) (string, error)

// consoleAnswers asks the operator to answer each question.
func consoleAnswers(c *console) answerFunc {
	return func(_ context.Context, question string) (string, error) {
		fmt.Fprintf(c.out, "\n%s\n", question)
		answer, err := c.ask("> ")
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input ended before %q was answered", question)
		}
		return answer, err
	}
}

// simulatedAnswers asks the completion service to answer in character.
func simulatedAnswers(client llm.Completer) answerFunc {
	return func(ctx context.Context, question string) (string, error) {
		return extraction.SimulateAnswer(ctx, client, question)
	}
}

// collectTranscript answers every question in order.
func collectTranscript(ctx context.Context, questions []string, answer answerFunc) ([]types.TranscriptEntry, error) {
	entries := make([]types.TranscriptEntry, 0, len(questions))
	for _, q := range questions {
		a, err := answer(ctx, q)
		if err != nil {
			return nil, err
		}
		entries = append(entries, types.TranscriptEntry{Question: q, Answer: a})
	}
	return entries, nil
}
