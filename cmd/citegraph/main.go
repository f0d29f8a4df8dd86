// Command citegraph ist das Admin-Werkzeug für Datenbank und Cache.
package main

func main() {
	Execute()
}
