package seed

// Entry is a single curated link in the seed file.
type Entry struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Group       string `yaml:"group"`
	SortOrder   int    `yaml:"sort_order"`
}

// File is the root structure of links.yaml:
//
//	links:
//	  - name: CRM
//	    url: https://crm.corp.example
//	    description: Customer database
//	    group: Sales
//	    sort_order: 10
type File struct {
	Links []Entry `yaml:"links"`
}
