package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/finaflow/finaflow/internal/models"
)

// FieldError describes a single validation failure.
type FieldError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationError enumerates every field that failed validation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Path, f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type issues struct {
	fields []FieldError
}

func (s *issues) add(path, reason string) {
	s.fields = append(s.fields, FieldError{Path: path, Reason: reason})
}

func (s *issues) err() error {
	if len(s.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: s.fields}
}

// RepairEnvelope applies the one tolerated repair: a widget slot that should
// be a single object but arrives as a one-element array of an object is
// unwrapped. Any other shape mismatch is left untouched for the validator to
// reject. A non-object candidate is returned unchanged.
func RepairEnvelope(raw json.RawMessage) json.RawMessage {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return raw
	}

	repaired := false
	for _, field := range []string{FieldSummary, FieldTransactions, FieldChart, FieldBudget, FieldAlerts} {
		slot, ok := top[field]
		if !ok {
			continue
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(slot, &arr); err != nil || len(arr) != 1 {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(arr[0], &obj); err != nil {
			continue
		}
		top[field] = arr[0]
		repaired = true
	}

	if !repaired {
		return raw
	}
	out, err := json.Marshal(top)
	if err != nil {
		return raw
	}
	return out
}

// Validate checks a candidate against the dashboard output contract. Present
// slots are fully checked: required fields, primitive types, enum
// membership, and array elements. Shape mismatches are rejected, never
// coerced. On success the typed DashboardOutput is returned.
func Validate(raw json.RawMessage) (*models.DashboardOutput, error) {
	var top map[string]interface{}
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Path: "$", Reason: "candidate is not a JSON object"}}}
	}

	iss := &issues{}

	if slot, ok := top[FieldSummary]; ok && slot != nil {
		validateSummary(iss, slot)
	}
	if slot, ok := top[FieldTransactions]; ok && slot != nil {
		validateTransactionList(iss, slot)
	}
	if slot, ok := top[FieldChart]; ok && slot != nil {
		validateChart(iss, slot)
	}
	if slot, ok := top[FieldBudget]; ok && slot != nil {
		validateBudget(iss, slot)
	}
	if slot, ok := top[FieldAlerts]; ok && slot != nil {
		validateAlerts(iss, slot)
	}

	if err := iss.err(); err != nil {
		return nil, err
	}

	var out models.DashboardOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Path: "$", Reason: fmt.Sprintf("decode: %v", err)}}}
	}
	return &out, nil
}

// asObject asserts the slot is an object, recording an issue otherwise.
func asObject(iss *issues, path string, v interface{}) (map[string]interface{}, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		iss.add(path, fmt.Sprintf("expected object, got %s", typeName(v)))
		return nil, false
	}
	return obj, true
}

func asArray(iss *issues, path string, v interface{}) ([]interface{}, bool) {
	arr, ok := v.([]interface{})
	if !ok {
		iss.add(path, fmt.Sprintf("expected array, got %s", typeName(v)))
		return nil, false
	}
	return arr, true
}

func requireString(iss *issues, obj map[string]interface{}, path, field string) (string, bool) {
	v, ok := obj[field]
	if !ok || v == nil {
		iss.add(path+"."+field, "missing required field")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		iss.add(path+"."+field, fmt.Sprintf("expected string, got %s", typeName(v)))
		return "", false
	}
	return s, true
}

func requireNumber(iss *issues, obj map[string]interface{}, path, field string) (float64, bool) {
	v, ok := obj[field]
	if !ok || v == nil {
		iss.add(path+"."+field, "missing required field")
		return 0, false
	}
	n, ok := v.(float64)
	if !ok {
		iss.add(path+"."+field, fmt.Sprintf("expected number, got %s", typeName(v)))
		return 0, false
	}
	return n, true
}

func requireEnum(iss *issues, obj map[string]interface{}, path, field string, allowed []string) {
	s, ok := requireString(iss, obj, path, field)
	if !ok {
		return
	}
	for _, a := range allowed {
		if s == a {
			return
		}
	}
	iss.add(path+"."+field, fmt.Sprintf("value '%s' outside enum %v", s, allowed))
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func validateSummary(iss *issues, v interface{}) {
	obj, ok := asObject(iss, FieldSummary, v)
	if !ok {
		return
	}
	requireEnum(iss, obj, FieldSummary, "sentiment", sentimentEnum)
	requireString(iss, obj, FieldSummary, "title")
	requireString(iss, obj, FieldSummary, "message")
	if ta, ok := obj["total_amount"]; ok && ta != nil {
		if _, ok := ta.(float64); !ok {
			iss.add(FieldSummary+".total_amount", fmt.Sprintf("expected number, got %s", typeName(ta)))
		}
	}
}

func validateTransactionList(iss *issues, v interface{}) {
	obj, ok := asObject(iss, FieldTransactions, v)
	if !ok {
		return
	}
	txs, ok := obj["transactions"]
	if !ok || txs == nil {
		iss.add(FieldTransactions+".transactions", "missing required field")
		return
	}
	arr, ok := asArray(iss, FieldTransactions+".transactions", txs)
	if !ok {
		return
	}
	for i, el := range arr {
		path := fmt.Sprintf("%s.transactions[%d]", FieldTransactions, i)
		tx, ok := asObject(iss, path, el)
		if !ok {
			continue
		}
		requireString(iss, tx, path, "id")
		requireString(iss, tx, path, "date")
		requireString(iss, tx, path, "merchant")
		requireNumber(iss, tx, path, "amount")
		requireEnum(iss, tx, path, "category", categoryEnum())
		requireEnum(iss, tx, path, "status", statusEnum)
	}
}

func validateChart(iss *issues, v interface{}) {
	obj, ok := asObject(iss, FieldChart, v)
	if !ok {
		return
	}
	if title, ok := obj["title"]; ok && title != nil {
		if _, ok := title.(string); !ok {
			iss.add(FieldChart+".title", fmt.Sprintf("expected string, got %s", typeName(title)))
		}
	}
	data, ok := obj["data"]
	if !ok || data == nil {
		iss.add(FieldChart+".data", "missing required field")
		return
	}
	arr, ok := asArray(iss, FieldChart+".data", data)
	if !ok {
		return
	}
	for i, el := range arr {
		path := fmt.Sprintf("%s.data[%d]", FieldChart, i)
		slice, ok := asObject(iss, path, el)
		if !ok {
			continue
		}
		requireString(iss, slice, path, "name")
		requireNumber(iss, slice, path, "value")
	}
}

func validateBudget(iss *issues, v interface{}) {
	obj, ok := asObject(iss, FieldBudget, v)
	if !ok {
		return
	}
	budgets, ok := obj["budgets"]
	if !ok || budgets == nil {
		iss.add(FieldBudget+".budgets", "missing required field")
		return
	}
	arr, ok := asArray(iss, FieldBudget+".budgets", budgets)
	if !ok {
		return
	}
	for i, el := range arr {
		path := fmt.Sprintf("%s.budgets[%d]", FieldBudget, i)
		entry, ok := asObject(iss, path, el)
		if !ok {
			continue
		}
		requireEnum(iss, entry, path, "category", categoryEnum())
		requireNumber(iss, entry, path, "spent")
		requireNumber(iss, entry, path, "limit")
		if pct, ok := requireNumber(iss, entry, path, "percentage"); ok {
			if pct != math.Trunc(pct) {
				iss.add(path+".percentage", "expected integer")
			}
		}
	}
}

func validateAlerts(iss *issues, v interface{}) {
	obj, ok := asObject(iss, FieldAlerts, v)
	if !ok {
		return
	}
	alerts, ok := obj["alerts"]
	if !ok || alerts == nil {
		iss.add(FieldAlerts+".alerts", "missing required field")
		return
	}
	arr, ok := asArray(iss, FieldAlerts+".alerts", alerts)
	if !ok {
		return
	}
	for i, el := range arr {
		path := fmt.Sprintf("%s.alerts[%d]", FieldAlerts, i)
		alert, ok := asObject(iss, path, el)
		if !ok {
			continue
		}
		requireString(iss, alert, path, "id")
		requireEnum(iss, alert, path, "severity", severityEnum)
		requireString(iss, alert, path, "emoji")
		requireString(iss, alert, path, "title")
		requireString(iss, alert, path, "message")
	}
}
