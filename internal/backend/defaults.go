package backend

// Per-backend defaults, looked up by id with a fallback entry. Flags and the
// config file override these.
type Defaults struct {
	ID       string
	Endpoint string
	Model    string
}

var defaultsTable = []Defaults{
	{
		ID:       "gpt",
		Endpoint: "https://api.openai.com",
		Model:    "gpt-4o-mini",
	},
	{
		ID:       "sakura",
		Endpoint: "http://127.0.0.1:8080",
	},
}

// DefaultsFor returns the defaults entry for a backend id. The second result
// reports whether the id had its own entry.
func DefaultsFor(id string) (Defaults, bool) {
	for _, d := range defaultsTable {
		if d.ID == id {
			return d, true
		}
	}
	return Defaults{ID: id}, false
}
