package main

import "github.com/Killavus/teamspeak-updater/cmd/teamspeak-updater/cmd"

func main() {
	cmd.Execute()
}
