package main

import "github.com/trampoline/sonar-connector-filestore/cmd/filestore/cmd"

func main() {
	cmd.Execute()
}
