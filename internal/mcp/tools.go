package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/service"
	"github.com/imyousuf/codegauge/internal/store"
)

// NewAnalysisTools returns the tools that analyze code and manage stored
// analyses through svc.
func NewAnalysisTools(svc *service.Service) []Tool {
	return []Tool{
		&analyzeCodeTool{svc: svc},
		&saveAnalysisTool{svc: svc},
		&listAnalysesTool{svc: svc},
		&getAnalysisTool{svc: svc},
		&deleteAnalysisTool{svc: svc},
	}
}

// errorText formats a failure for a tool result, naming the error class so
// clients can tell bad input from server faults.
func errorText(err error) string {
	var verr *analyzer.ValidationError
	var perr *analyzer.ParseError
	switch {
	case errors.As(err, &verr):
		return "validation error: " + verr.Reason
	case errors.As(err, &perr):
		return "parse error: " + perr.Error()
	case errors.Is(err, store.ErrNotFound):
		return "not found: " + err.Error()
	case errors.Is(err, store.ErrDuplicateFileName):
		return "conflict: " + err.Error()
	}
	return "error: " + err.Error()
}

func toJSON(v any) (string, bool) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "error: " + err.Error(), false
	}
	return string(data), true
}

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

func requireArg(args map[string]any, name string) (string, error) {
	v := stringArg(args, name)
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

var (
	fileNameProp = map[string]any{"type": "string", "description": "File name, e.g. app.js"}
	codeProp     = map[string]any{"type": "string", "description": "JavaScript source text"}
	idProp       = map[string]any{"type": "string", "description": "Analysis ID"}
)

// analyzeCodeTool runs the analyzer without storing anything.
type analyzeCodeTool struct{ svc *service.Service }

func (t *analyzeCodeTool) Name() string { return "analyze_code" }
func (t *analyzeCodeTool) Description() string {
	return "Compute line counts, comment density, cyclomatic complexity and maintainability index for a JavaScript snippet. Nothing is stored."
}
func (t *analyzeCodeTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"fileName": fileNameProp, "code": codeProp},
		"required":   []string{"fileName", "code"},
	}
}
func (t *analyzeCodeTool) Execute(_ context.Context, args map[string]any) (string, bool) {
	report, err := t.svc.Analyzer().Analyze(stringArg(args, "fileName"), stringArg(args, "code"))
	if err != nil {
		return errorText(err), false
	}
	return toJSON(report)
}

// saveAnalysisTool creates a record, or updates one when id is given.
type saveAnalysisTool struct{ svc *service.Service }

func (t *saveAnalysisTool) Name() string { return "save_analysis" }
func (t *saveAnalysisTool) Description() string {
	return "Analyze a JavaScript snippet and store the result. Pass id to update an existing analysis; fileName and code may then be omitted to keep their stored values."
}
func (t *saveAnalysisTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"id": idProp, "fileName": fileNameProp, "code": codeProp},
	}
}
func (t *saveAnalysisTool) Execute(ctx context.Context, args map[string]any) (string, bool) {
	var (
		rec *store.Record
		err error
	)
	if id := stringArg(args, "id"); id != "" {
		rec, err = t.svc.Update(ctx, id, stringArg(args, "fileName"), stringArg(args, "code"))
	} else {
		rec, err = t.svc.Create(ctx, stringArg(args, "fileName"), stringArg(args, "code"))
	}
	if err != nil {
		return errorText(err), false
	}
	return toJSON(rec)
}

// listAnalysesTool lists stored analyses without their source code.
type listAnalysesTool struct{ svc *service.Service }

func (t *listAnalysesTool) Name() string { return "list_analyses" }
func (t *listAnalysesTool) Description() string {
	return "List stored analyses, oldest first, with their metrics and status. Source code is omitted."
}
func (t *listAnalysesTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"enum":        []string{string(store.StatusPending), string(store.StatusAnalyzed), string(store.StatusFailed)},
				"description": "Only return analyses with this status",
			},
		},
	}
}
func (t *listAnalysesTool) Execute(ctx context.Context, args map[string]any) (string, bool) {
	recs, err := t.svc.List(ctx)
	if err != nil {
		return errorText(err), false
	}
	status := store.Status(stringArg(args, "status"))
	out := make([]store.Record, 0, len(recs))
	for _, rec := range recs {
		if status != "" && rec.Status != status {
			continue
		}
		r := *rec
		r.Code = ""
		out = append(out, r)
	}
	return toJSON(out)
}

// getAnalysisTool fetches one analysis by ID or file name.
type getAnalysisTool struct{ svc *service.Service }

func (t *getAnalysisTool) Name() string { return "get_analysis" }
func (t *getAnalysisTool) Description() string {
	return "Get one stored analysis, including its source code, by id or by fileName."
}
func (t *getAnalysisTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"id": idProp, "fileName": fileNameProp},
	}
}
func (t *getAnalysisTool) Execute(ctx context.Context, args map[string]any) (string, bool) {
	var (
		rec *store.Record
		err error
	)
	switch {
	case stringArg(args, "id") != "":
		rec, err = t.svc.Get(ctx, stringArg(args, "id"))
	case stringArg(args, "fileName") != "":
		rec, err = t.svc.GetByFileName(ctx, stringArg(args, "fileName"))
	default:
		err = errors.New("id or fileName is required")
	}
	if err != nil {
		return errorText(err), false
	}
	return toJSON(rec)
}

// deleteAnalysisTool removes one analysis.
type deleteAnalysisTool struct{ svc *service.Service }

func (t *deleteAnalysisTool) Name() string { return "delete_analysis" }
func (t *deleteAnalysisTool) Description() string {
	return "Delete a stored analysis by id."
}
func (t *deleteAnalysisTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"id": idProp},
		"required":   []string{"id"},
	}
}
func (t *deleteAnalysisTool) Execute(ctx context.Context, args map[string]any) (string, bool) {
	id, err := requireArg(args, "id")
	if err == nil {
		err = t.svc.Delete(ctx, id)
	}
	if err != nil {
		return errorText(err), false
	}
	return fmt.Sprintf("deleted %s", id), true
}
