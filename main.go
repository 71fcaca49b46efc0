package main

import "github.com/sdh-lab/interview-pipeline/cmd"

func main() {
	cmd.Execute()
}
