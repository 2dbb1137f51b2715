package main

import "timetracker/cmd"

func main() {
	cmd.Execute()
}
