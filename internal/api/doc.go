// Package api maps the reel HTTP surface onto catalog operations.
//
// Each handler performs at most one catalog call and translates its outcome
// into a status code and body:
//
//	GET    /movie        200 [movie, ...]
//	POST   /movie        201 movie            400/413/415 on a bad body
//	GET    /movie/{id}   200 movie            404 "movie not found"
//	PUT    /movie/{id}   200 movie            404 "movie not found", 400/413/415
//	DELETE /movie/{id}   204 (empty)          404 (empty)
//
// Request bodies are decoded strictly by movie.Decode before the catalog is
// consulted, so a malformed request never reaches the store. Error bodies
// are JSON strings. Unknown paths and methods are answered by the router
// with 404 and 405.
package api
