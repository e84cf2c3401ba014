// Package pool recycles fixed-size byte buffers for connection I/O.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package pool
