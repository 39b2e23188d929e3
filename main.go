package main

import "github.com/iequus/iequus_backend/cmd"

func main() {
	cmd.Execute()
}
