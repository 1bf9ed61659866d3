package events

// CooldownTable records the last day each template fired. Entries are created
// on first firing and overwritten on every later one; they are never removed.
// Callers must record non-decreasing days per template.
type CooldownTable struct {
	lastFired map[string]int
}

// NewCooldownTable returns an empty table.
func NewCooldownTable() *CooldownTable {
	return &CooldownTable{lastFired: make(map[string]int)}
}

// RecordFired notes that the named template fired on day.
func (c *CooldownTable) RecordFired(name string, day int) {
	c.lastFired[name] = day
}

// IsEligible reports whether the template may fire on day. A template that
// never fired is always eligible.
func (c *CooldownTable) IsEligible(name string, day, cooldownDays int) bool {
	last, ok := c.lastFired[name]
	if !ok {
		return true
	}
	return day-last >= cooldownDays
}

// LastFired returns the last day the template fired.
func (c *CooldownTable) LastFired(name string) (int, bool) {
	day, ok := c.lastFired[name]
	return day, ok
}

// Snapshot copies the table for persistence.
func (c *CooldownTable) Snapshot() map[string]int {
	out := make(map[string]int, len(c.lastFired))
	for name, day := range c.lastFired {
		out[name] = day
	}
	return out
}

// Restore replaces the table with saved entries (used when resuming a world).
func (c *CooldownTable) Restore(saved map[string]int) {
	c.lastFired = make(map[string]int, len(saved))
	for name, day := range saved {
		c.lastFired[name] = day
	}
}
