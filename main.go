/*
	Copyright 2026 The race-engine authors
*/

package main

import "github.com/tilerace/race-engine/cmd"

func main() {
	cmd.Execute()
}
