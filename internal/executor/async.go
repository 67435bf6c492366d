package executor

import schema "github.com/hanpama/polygraph/internal/schema"

// pending marks a response slot whose async field is still queued.
type pending struct{}

type queuedField struct {
	task      AsyncResolveTask
	fieldType *schema.TypeRef
}

func (s *executionState) enqueue(f queuedField) {
	s.queue = append(s.queue, f)
}

// flush hands the current depth to the runtime in one batch and completes
// the results into data. Completion may queue the next depth.
func (s *executionState) flush(data map[string]any) {
	batch := s.queue[:0:0]
	for _, f := range s.queue {
		if !s.isNullified(f.task.Path) {
			batch = append(batch, f)
		}
	}
	s.queue = nil
	if len(batch) == 0 {
		return
	}

	tasks := make([]AsyncResolveTask, len(batch))
	for i, f := range batch {
		tasks[i] = f.task
	}
	results := s.runtime.BatchResolveAsync(s.ctx, tasks)
	for i, f := range batch {
		var r AsyncResolveResult
		if i < len(results) {
			r = results[i]
		}
		s.completeQueued(f, r, data)
	}
}

// completeQueued writes one batch result into data. A null in a Non-Null
// async field nulls its top-level response field.
func (s *executionState) completeQueued(f queuedField, r AsyncResolveResult, data map[string]any) {
	path := f.task.Path
	if s.isNullified(path) {
		return
	}
	var value any
	if r.Error != nil {
		s.addResolverError(r.Error, path)
	} else {
		value = s.completeValue(f.fieldType, f.task.Fields, r.Value, path)
	}
	if isNullish(value) {
		if f.fieldType.IsNonNull() {
			top := path.topLevel()
			setValueAtPath(data, top, nil)
			s.nullify(top)
			return
		}
		value = nil
	}
	setValueAtPath(data, path, value)
}

func (s *executionState) nullify(p Path) {
	if len(p) > 0 {
		s.nullified[p.String()] = struct{}{}
	}
}

func (s *executionState) isNullified(p Path) bool {
	if len(s.nullified) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if _, ok := s.nullified[p[:i].String()]; ok {
			return true
		}
	}
	return false
}

// setValueAtPath writes value into the response tree, creating objects for
// missing names. It stops silently where an ancestor is already null.
func setValueAtPath(root map[string]any, path Path, value any) {
	if len(path) == 0 {
		return
	}
	var cur any = root
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return
			}
			next, exists := m[e]
			if !exists {
				next = make(map[string]any)
				m[e] = next
			}
			cur = next
		case int:
			list, ok := cur.([]any)
			if !ok || e >= len(list) {
				return
			}
			if list[e] == nil {
				list[e] = make(map[string]any)
			}
			cur = list[e]
		}
	}
	switch last := path[len(path)-1].(type) {
	case string:
		if m, ok := cur.(map[string]any); ok {
			m[last] = value
		}
	case int:
		if list, ok := cur.([]any); ok && last < len(list) {
			list[last] = value
		}
	}
}
