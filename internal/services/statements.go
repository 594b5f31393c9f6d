package services

// Canned control-plane statements. The ksqlDB REST API exposes inspection
// through the statement endpoint rather than dedicated resources, so these
// are submitted exactly like user statements.
const (
	showQueriesStatement    = "SHOW QUERIES;"
	listPropertiesStatement = "LIST PROPERTIES;"
)

func terminateStatement(queryID string) string {
	return "TERMINATE " + queryID + ";"
}
