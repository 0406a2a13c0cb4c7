package main

import (
	"catrank.dev/backend/cmd/app"
)

// @title          Category Ranking API
// @version        1.0.0
// @description    Ranking snapshots of Twitch categories, with growth and market classification over time.
// @license.name   MIT License
// @license.url    https://opensource.org/licenses/MIT
// @BasePath       /
func main() {
	app.Run()
}
