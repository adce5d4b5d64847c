package app

// Version is the current version of the mirrorcore package.
const Version = "0.1.0"
