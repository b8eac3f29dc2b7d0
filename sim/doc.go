// Package sim runs quantum circuits shot by shot and aggregates what their
// measurements declared.
//
// # Reading Guide
//
// Start with these files:
//   - simulator.go: Simulator.Run, which builds one circuit per shot and
//     applies it to a fresh sparse density matrix
//   - results.go: outcome histograms, P(1) estimates and their output
//   - rng.go: the partitioned RNG that makes runs reproducible
//
// # Architecture
//
// The simulation engine lives in sub-packages:
//   - sim/ptm/: Pauli transfer matrices of gates and noise
//   - sim/tp/: composition of PTMs
//   - sim/backend/: dense density-matrix backends (cpu, parallel)
//   - sim/sparsedm/: registers holding only entangled bits densely
//   - sim/circuit/: qubits, gates, samplers and circuits
//   - sim/photons/: resonator photon dephasing after measurements
//   - sim/overlay/: device setups and ASAP circuit building
//   - sim/qasm/: QASM programs with hardware and noise configurations
//   - sim/trace/: per-shot trace recording
//
// Backends register themselves via init() functions, so importing
// sim/sparsedm makes "cpu" and "parallel" available by name.
package sim
