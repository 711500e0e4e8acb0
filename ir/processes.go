package ir

import "strconv"

// Processes is the provenance log: each entry names a configuration action,
// followed by its arguments separated by spaces.
type Processes struct {
	list []string
}

// Add starts a new entry.
func (p *Processes) Add(process string) {
	p.list = append(p.list, process)
}

// AddArgument appends an integer argument to the last entry.
func (p *Processes) AddArgument(arg int) {
	p.AddArgumentString(strconv.Itoa(arg))
}

// AddArgumentString appends a text argument to the last entry.
func (p *Processes) AddArgumentString(arg string) {
	if len(p.list) == 0 {
		return
	}
	p.list[len(p.list)-1] += " " + arg
}

// AddIfNonZero adds "process value" only when value is non-zero.
func (p *Processes) AddIfNonZero(process string, value int) {
	if value != 0 {
		p.Add(process)
		p.AddArgument(value)
	}
}

// List returns the entries in order.
func (p *Processes) List() []string { return p.list }
