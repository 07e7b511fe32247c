package handlers

import "strconv"

const (
	studentsResource = "students"
	projectsResource = "projects"
)

// Links builds the canonical URIs of resources. With an empty base the
// links are host-relative.
type Links struct {
	base string
}

func NewLinks(baseURL string) *Links {
	return &Links{base: baseURL}
}

// Collection returns {base}/{resource}.
func (l *Links) Collection(resource string) string {
	return l.base + "/" + resource
}

// Entity returns {base}/{resource}/{id}.
func (l *Links) Entity(resource string, id int64) string {
	return l.Collection(resource) + "/" + strconv.FormatInt(id, 10)
}

// SubCollection returns {base}/{resource}/{id}/{sub}.
func (l *Links) SubCollection(resource string, id int64, sub string) string {
	return l.Entity(resource, id) + "/" + sub
}

// SubResource returns {base}/{resource}/{id}/{sub}/{subID}.
func (l *Links) SubResource(resource string, id int64, sub string, subID int64) string {
	return l.SubCollection(resource, id, sub) + "/" + strconv.FormatInt(subID, 10)
}
