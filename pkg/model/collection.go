package model

import "strings"

// Collection is a named, ordered group of saved requests.
type Collection struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Requests []Request `json:"requests"`
	Folders  []Folder  `json:"folders,omitempty"`
}

// Folder nests requests inside a collection. Folders can contain folders.
type Folder struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Requests []Request `json:"requests"`
	Folders  []Folder  `json:"folders,omitempty"`
}

// FolderRequest is a request together with the folder path that holds it.
type FolderRequest struct {
	Path    string // "" for top-level requests, "a/b" for nested folders
	Request Request
}

// IndexOf returns the position of the top-level request with id, or -1.
func (c Collection) IndexOf(id string) int {
	for i, r := range c.Requests {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Upsert replaces the top-level request with the same id or appends req.
// Folders are not searched. It returns the request that was replaced.
func (c *Collection) Upsert(req Request) *Request {
	if i := c.IndexOf(req.ID); i >= 0 {
		old := c.Requests[i]
		c.Requests[i] = req
		return &old
	}
	c.Requests = append(c.Requests, req)
	return nil
}

// Flatten lists top-level requests first, then each folder depth-first.
func (c Collection) Flatten() []FolderRequest {
	var out []FolderRequest
	for _, r := range c.Requests {
		out = append(out, FolderRequest{Request: r})
	}
	for _, f := range c.Folders {
		out = f.flatten(out, nil)
	}
	return out
}

func (f Folder) flatten(out []FolderRequest, parents []string) []FolderRequest {
	path := append(append([]string(nil), parents...), f.Name)
	joined := strings.Join(path, "/")
	for _, r := range f.Requests {
		out = append(out, FolderRequest{Path: joined, Request: r})
	}
	for _, sub := range f.Folders {
		out = sub.flatten(out, path)
	}
	return out
}

// FindRequest looks a request up by id, folders included.
func (c Collection) FindRequest(id string) (Request, bool) {
	for _, fr := range c.Flatten() {
		if fr.Request.ID == id {
			return fr.Request, true
		}
	}
	return Request{}, false
}

// FindRequestByName matches a request by id first, then by
// case-insensitive name.
func (c Collection) FindRequestByName(name string) (Request, bool) {
	if r, ok := c.FindRequest(name); ok {
		return r, true
	}
	for _, fr := range c.Flatten() {
		if strings.EqualFold(fr.Request.Name, name) {
			return fr.Request, true
		}
	}
	return Request{}, false
}
