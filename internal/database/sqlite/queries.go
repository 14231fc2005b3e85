package sqlite

// SQL queries for SQLite metadata introspection.
const (
	queryListTables = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	queryGetColumns = `
		SELECT name, type, "notnull", COALESCE(dflt_value, ''), cid, pk
		FROM pragma_table_info(?)
		ORDER BY cid`
)
