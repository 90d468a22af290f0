//go:build windows

package webgpu

import "github.com/deft-ml/deft/internal/expr"

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

// binaryShaderTemplate is the element-wise two-operand shader; EXPR is
// replaced per operator.
const binaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = EXPR;
    }
}
`

// unaryShaderTemplate is the element-wise one-operand shader; EXPR is
// replaced per operator.
const unaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = EXPR;
    }
}
`

// matmulShader performs matrix multiplication: C = A @ B.
// A is [M, K], B is [K, N], C is [M, N].
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,  // rows of A and C
    K: u32,  // cols of A, rows of B
    N: u32,  // cols of B and C
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.M || col >= params.N) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        let a_idx = row * params.K + k;
        let b_idx = k * params.N + col;
        sum = sum + a[a_idx] * b[b_idx];
    }

    let c_idx = row * params.N + col;
    result[c_idx] = sum;
}
`

// transposeShader transposes a 2D matrix.
const transposeShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.rows || col >= params.cols) {
        return;
    }

    let in_idx = row * params.cols + col;
    let out_idx = col * params.rows + row;
    result[out_idx] = input[in_idx];
}
`

// binaryExprs maps operator kinds to their WGSL element expressions.
var binaryExprs = map[expr.OpKind]string{
	expr.OpAdd:     "a[idx] + b[idx]",
	expr.OpSub:     "a[idx] - b[idx]",
	expr.OpMul:     "a[idx] * b[idx]",
	expr.OpDiv:     "a[idx] / b[idx]",
	expr.OpPow:     "pow(a[idx], b[idx])",
	expr.OpMinimum: "min(a[idx], b[idx])",
	expr.OpMaximum: "max(a[idx], b[idx])",
}

var unaryExprs = map[expr.OpKind]string{
	expr.OpNeg:  "-input[idx]",
	expr.OpAbs:  "abs(input[idx])",
	expr.OpExp:  "exp(input[idx])",
	expr.OpLog:  "log(input[idx])",
	expr.OpSqrt: "sqrt(input[idx])",
	expr.OpTanh: "tanh(input[idx])",
}
