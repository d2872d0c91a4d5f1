package ingest

// SetPowerBaseURL points c at a test server.
func SetPowerBaseURL(c *PowerClient, u string) { c.baseURL = u }
