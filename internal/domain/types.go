package domain

// LogLevel represents log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// PolicyDocument is a parsed IAM policy document. Statements are kept in the
// raw decoded-JSON shape so policy evaluation can handle the single-statement,
// list, and string-vs-list variations AWS allows.
type PolicyDocument map[string]interface{}

// Statements returns the Statement entries of a policy document, normalizing
// the single-object form to a one-element list. Returns nil for a nil or
// statement-less document.
func (d PolicyDocument) Statements() []map[string]interface{} {
	if d == nil {
		return nil
	}

	switch stmts := d["Statement"].(type) {
	case []interface{}:
		result := make([]map[string]interface{}, 0, len(stmts))
		for _, stmtInterface := range stmts {
			if stmt, ok := stmtInterface.(map[string]interface{}); ok {
				result = append(result, stmt)
			}
		}
		return result
	case map[string]interface{}:
		return []map[string]interface{}{stmts}
	default:
		return nil
	}
}
