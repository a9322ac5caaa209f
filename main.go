package main

import "medifinder-ingestor/cmd"

func main() {
	cmd.Execute()
}
