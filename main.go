// Command harvester is the entry point for the harvesting pipeline CLI.
package main

import "github.com/kedra-data/wrc-harvester/cmd"

func main() {
	cmd.Execute()
}
