// Package main is the entry point for the matchreport CLI tool, which turns
// GDL harness finalstate.xml files into CSV reports.
package main

import "github.com/pable/gdl-match-report/cmd"

func main() {
	cmd.Execute()
}
