package app

// NewRegistry returns the built-in commands.
func NewRegistry() Registry {
	return Registry{
		"ls":     list,
		"cd":     changeDir,
		"pwd":    printDir,
		"touch":  touch,
		"curl":   curl,
		"rm":     remove,
		"set":    set,
		"open":   open,
		"ed":     edit,
		"read":   markRead,
		"wc":     count,
		"bib":    bib,
		"printf": printBook,
		"man":    manual,
		"exit":   exit,
	}
}
