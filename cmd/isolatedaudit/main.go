// Package main provides the isolatedaudit CLI.
//
// isolatedaudit measures how much each third-party URL pattern costs a page:
// it audits the page unblocked, then once per pattern with only that pattern
// blocked, repeating every measurement and appending one CSV row per run.
//
// Usage:
//
//	isolatedaudit --url https://example.com --numberOfRuns 5
//	isolatedaudit history
package main

func main() {
	Execute()
}
