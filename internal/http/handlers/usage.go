package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const usageHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>Book Reviews API</title>
    <style>
      body { font-family: system-ui, sans-serif; max-width: 760px; margin: 2rem auto; padding: 0 1rem; color: #1e293b; }
      code, pre { background: #f1f5f9; padding: 0.1rem 0.3rem; border-radius: 4px; }
      pre { padding: 0.75rem; overflow-x: auto; }
      td { padding: 0.25rem 0.75rem 0.25rem 0; vertical-align: top; }
    </style>
  </head>
  <body>
    <h1>Book Reviews API</h1>
    <p>Mutating requests need an <code>x-api-key</code> header.</p>
    <table>
      <tr><td><code>POST /api/reviews</code></td><td>create a review: bookTitle, author, reviewText, rating (1-5), tags?, status?</td></tr>
      <tr><td><code>GET /api/reviews</code></td><td>list reviews; query: author, rating, status, sort=rating|date[:asc|desc]</td></tr>
      <tr><td><code>GET /api/reviews/:id</code></td><td>fetch one review</td></tr>
      <tr><td><code>PUT /api/reviews/:id</code></td><td>owner only: reviewText?, rating?, tags?</td></tr>
      <tr><td><code>DELETE /api/reviews/:id</code></td><td>owner or admin</td></tr>
    </table>
    <pre>curl -X POST localhost:3000/api/reviews \
  -H 'x-api-key: key-alice-123' -H 'Content-Type: application/json' \
  -d '{"bookTitle":"Dune","author":"Frank Herbert","reviewText":"Great","rating":5}'</pre>
  </body>
</html>`

func Usage(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(usageHTML))
}
