// Command assistant runs the personal assistant API and its maintenance tasks.
package main

func main() {
	Execute()
}
