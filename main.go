package main

import "github.com/cldixon/moodjournal/cmd"

func main() {
	cmd.Execute()
}
