package intelligence

import (
	"context"
	"sync"

	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/validation"
	"github.com/alexanderramin/taskpilot/internal/vocab"
)

// Parser is the deterministic, pattern-based resolver. It has no state
// beyond compiled patterns and never fails.
type Parser struct {
	extractor *Extractor
}

// NewParser builds a Parser over the given vocabulary.
func NewParser(v *vocab.Vocabulary) *Parser {
	return &Parser{extractor: NewExtractor(v)}
}

var defaultParser = sync.OnceValue(func() *Parser {
	return &Parser{extractor: extractor()}
})

// DefaultParser returns the Parser for the embedded vocabulary.
func DefaultParser() *Parser {
	return defaultParser()
}

// Parse classifies text, extracts its entities and validates the result.
func (p *Parser) Parse(text string) *Command {
	ent := p.extractor.Extract(text)
	cmd := &Command{
		Intent:      ClassifyIntent(text),
		ProjectName: ent.ProjectName,
		TotalTasks:  ent.TotalTasks,
		Allocations: ent.Allocations,
	}
	if cmd.Intent == IntentUpdateTask {
		cmd.UpdateFields = p.extractor.ExtractUpdateFields(text)
	}
	Finalize(cmd)
	return cmd
}

// Resolve implements Resolver.
func (p *Parser) Resolve(_ context.Context, text string) (*Command, error) {
	return p.Parse(text), nil
}

// Finalize recomputes cmd.ValidationError from the command's own fields and,
// for a valid creation, fills in per-person assignments. Whatever produced
// the command, its validation state is decided here.
func Finalize(cmd *Command) {
	cmd.ValidationError = nil

	var err error
	switch cmd.Intent {
	case IntentCreateProject:
		err = validation.ValidateProjectCreation(cmd.Name(), cmd.TotalTasks, cmd.Allocations)
	case IntentUpdateTask:
		err = validation.ValidateProjectUpdate(cmd.UpdateFields)
	}
	if err == nil && cmd.Intent != IntentCreateProject && len(cmd.Allocations) > 0 {
		err = validation.ValidateAllocations(cmd.Allocations, cmd.Total())
	}

	if err != nil {
		msg := err.Error()
		cmd.ValidationError = &msg
		return
	}

	if cmd.Intent == IntentCreateProject {
		cmd.Allocations = scheduler.Enhance(cmd.Allocations, nil)
	}
}
