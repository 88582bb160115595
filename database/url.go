package database

import "strings"

// ConstructDatabaseURL appends the database name to a base postgres URL and
// defaults sslmode to disable when the URL does not set one. An empty database
// name means the base URL already names its database.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	url := strings.TrimRight(baseURL, "/")

	if databaseName != "" {
		if base, query, found := strings.Cut(url, "?"); found {
			url = base + "/" + databaseName + "?" + query
		} else {
			url = url + "/" + databaseName
		}
	}

	if !strings.Contains(url, "sslmode=") {
		if strings.Contains(url, "?") {
			url += "&sslmode=disable"
		} else {
			url += "?sslmode=disable"
		}
	}

	return url
}
