package main

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"
