package docs

// @title           Ambulance Dispatch API
// @version         1.0
// @description     Dispatch service handles ambulance requests, driver assignment and real-time vehicle tracking. Supports WebSocket connections for live position feeds.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
