package main

import "fototeca/internal/app"

func main() {
	app.Run()
}
