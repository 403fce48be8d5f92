// Package session manages server-side sessions stamped with the tenant
// they were created in.
//
// A Manager orchestrates the lifecycle: a Transport moves the opaque
// token between client and server, a Store persists session state, and
// a Config defines idle and max timeouts for anonymous and
// authenticated users. In-memory, Redis, MongoDB and PostgreSQL stores
// ship with the package.
//
// # Tenant stamping
//
// Sessions created inside a tenant-bound request carry that tenant's
// id. Wrap any store in a TenantStore to enforce the stamp on lookup:
// a session presented outside its tenant surfaces as not found and the
// attempt is recorded through the violation reporter. Authentication
// additionally records the login tenant; ValidateLoginTenant destroys
// sessions that move across tenants after login and forces the user
// out everywhere.
//
// # Usage
//
//	cookieMgr, _ := cookie.New([]string{secret})
//	store := session.NewTenantStore(
//	    session.NewMemoryStore(5*time.Minute),
//	    session.WithViolationReporter(reporter),
//	)
//	manager := session.New(
//	    session.WithStore(store),
//	    session.WithCookieManager(cookieMgr),
//	    session.WithReporter(reporter),
//	)
//
//	func login(w http.ResponseWriter, r *http.Request) {
//	    _ = manager.Authenticate(r.Context(), w, r, userID)
//	}
//
// API clients can use a header transport instead of cookies:
//
//	manager := session.New(
//	    session.WithStore(store),
//	    session.WithTransport(session.NewHeaderTransport("X-Session-Token")),
//	)
package session
