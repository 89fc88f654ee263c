package apifake

// Route path constants, relative to BasePath
const (
	BasePath = "/api/users"

	RouteLogin          = BasePath + "/login"
	RouteRegister       = BasePath + "/register/{role}"
	RouteLogout         = BasePath + "/logout"
	RouteGetEmployees   = BasePath + "/getEmployees"
	RouteFindEmployee   = BasePath + "/findEmployee/{id}"
	RouteAddEmployee    = BasePath + "/addEmployee"
	RouteUpdateEmployee = BasePath + "/updateEmployee/{adminId}"
	RouteDeleteEmployee = BasePath + "/delete/{id}"
)

func (a *API) initRoutes() {
	a.registerRoute("POST "+RouteLogin, ChainMiddleware(a.LoginHandler(), a.middleware()...))
	a.registerRoute("POST "+RouteRegister, ChainMiddleware(a.RegisterHandler(), a.middleware()...))
	a.registerRoute("POST "+RouteLogout, ChainMiddleware(a.LogoutHandler(), a.middleware(a.RequireAuth())...))

	a.registerRoute("GET "+RouteGetEmployees, ChainMiddleware(a.ListEmployeesHandler(), a.middleware(a.RequireAuth())...))
	a.registerRoute("GET "+RouteFindEmployee, ChainMiddleware(a.FindEmployeeHandler(), a.middleware(a.RequireAuth())...))
	a.registerRoute("POST "+RouteAddEmployee, ChainMiddleware(a.AddEmployeeHandler(), a.middleware(a.RequireAuth())...))
	a.registerRoute("PUT "+RouteUpdateEmployee, ChainMiddleware(a.UpdateEmployeeHandler(), a.middleware(a.RequireAuth())...))
	a.registerRoute("DELETE "+RouteDeleteEmployee, ChainMiddleware(a.DeleteEmployeeHandler(), a.middleware(a.RequireAuth())...))
}
