// Package provider defines the subtitle provider abstraction and the
// priority-ordered registry with throttle tracking shared by acquisition
// runs.
package provider
