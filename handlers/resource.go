package handlers

import "manytomany/models"

type Link struct {
	Href string `json:"href"`
}

// Resource is the hypermedia representation of a student or a project.
type Resource struct {
	Id    int64           `json:"id"`
	Name  string          `json:"name"`
	Href  string          `json:"href"`
	Links map[string]Link `json:"_links"`
}

func (l *Links) resource(collection string, id int64, name, related string) Resource {
	self := l.Entity(collection, id)
	return Resource{
		Id:   id,
		Name: name,
		Href: self,
		Links: map[string]Link{
			"self":       {Href: self},
			"collection": {Href: l.Collection(collection)},
			related:      {Href: l.SubCollection(collection, id, related)},
		},
	}
}

func (l *Links) Student(s *models.Student) Resource {
	return l.resource(studentsResource, s.Id, s.Name, projectsResource)
}

func (l *Links) Project(p *models.Project) Resource {
	return l.resource(projectsResource, p.Id, p.Name, studentsResource)
}

// Students shapes a list; an empty input gives an empty, non-nil slice.
func (l *Links) Students(students []*models.Student) []Resource {
	out := make([]Resource, 0, len(students))
	for _, s := range students {
		out = append(out, l.Student(s))
	}
	return out
}

func (l *Links) Projects(projects []*models.Project) []Resource {
	out := make([]Resource, 0, len(projects))
	for _, p := range projects {
		out = append(out, l.Project(p))
	}
	return out
}

type nameRequest struct {
	Name string `json:"name"`
}

// refRequest references an existing entity by id; other fields are ignored.
type refRequest struct {
	Id int64 `json:"id"`
}
