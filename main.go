package main

import (
	"github.com/axellelanca/sharetracker/cmd"

	// Les sous-commandes s'enregistrent auprès de RootCmd via leur init()
	_ "github.com/axellelanca/sharetracker/cmd/cli"
	_ "github.com/axellelanca/sharetracker/cmd/server"
)

func main() {
	cmd.Execute()
}
