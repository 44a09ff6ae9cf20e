package query

import (
	"fmt"
	"strings"
)

// DateExpr returns the ClickHouse expression extracting the calendar day
// from call_start. With an explicit zone the day boundary follows that
// zone; otherwise the server/session zone applies.
func DateExpr(tz string) string {
	if tz == "" {
		return "toDate(call_start)"
	}
	return fmt.Sprintf("toDate(toTimeZone(call_start, '%s'))", tz)
}

// AgentStats builds the per-agent aggregation query for one day.
// The FORMAT clause makes the server render the result as CSV with a
// header row; the response bytes are the artifact, delivered verbatim.
func AgentStats(dateExpr, date string) string {
	return strings.TrimSpace(fmt.Sprintf(`
SELECT
    agent_id,
    avg(call_duration_sec) AS avg_call_length_sec,
    quantileExact(0.9)(call_duration_sec) AS p90_call_length_sec
FROM conversations
WHERE %s = toDate('%s')
GROUP BY agent_id
ORDER BY agent_id
FORMAT CSVWithNames
`, dateExpr, date))
}

// CountRows builds the preflight probe counting conversations for the
// day. No FORMAT clause: the driver scans the scalar directly.
func CountRows(dateExpr, date string) string {
	return fmt.Sprintf("SELECT count() AS n FROM conversations WHERE %s = toDate('%s')", dateExpr, date)
}
