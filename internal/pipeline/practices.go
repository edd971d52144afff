package pipeline

var requirementsPractices = []string{
	"Clearly define the purpose and scope of your API",
	"Identify all user roles and their permissions",
	"List all resources that will be managed through the API",
	"Specify security requirements and constraints",
	"Consider rate limiting, pagination, and versioning needs",
}

var architecturePractices = []string{
	"Use consistent naming conventions (e.g., plural nouns for resources)",
	"Design clear URL hierarchies that reflect resource relationships",
	"Follow RESTful principles for resource operations",
	"Consider using versioning in the URL path or headers",
	"Plan for appropriate error handling and status codes",
	"Keep resource URLs simple and intuitive",
}

var endpointPractices = []string{
	"Use appropriate HTTP methods (GET, POST, PUT, DELETE, etc.)",
	"Include comprehensive request validation",
	"Design consistent response structures",
	"Document all possible response status codes",
	"Use query parameters for filtering, sorting, and pagination",
	"Provide realistic examples for requests and responses",
	"Include examples for both success and error scenarios",
}

var documentationPractices = []string{
	"Include clear descriptions for all endpoints",
	"Provide realistic examples for request and response bodies",
	"Document all possible response status codes and their meanings",
	"Include authentication and authorization details",
	"Add contact information and terms of service",
	"Use tags to group related endpoints",
	"Include examples for common use cases",
}
