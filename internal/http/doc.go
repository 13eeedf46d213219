// Package http exposes the site over net/http.
//
// Admin routes mount under /admin/api:
//   - Segments: /pages/{slug}/segments, /pages/{slug}/segments/{id},
//     /pages/{slug}/segments/{id}/translate
//   - Shortcuts: /registry/{id}/shortcut
//   - Glossary: /glossary, /glossary/{term}
//   - Media: /media
//
// Public routes are /content/{slug}/{key}, /pages/{slug}, /api/search,
// /api/downloads and /api/i18n/{lang}. Metrics are served at /metrics.
package http
