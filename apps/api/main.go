package main

// SchoolMate API server.
// Storage is chosen with DATABASE_ENGINE (postgres | mongodb | memory).
func main() {
	startWithDig()
}
